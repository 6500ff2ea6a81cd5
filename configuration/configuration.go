// SPDX-License-Identifier: ISC
// Copyright (c) 2026 Mediclaim Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - Lua configuration for a participant node
package configuration

import (
	"path/filepath"

	"github.com/bitmark-inc/logger"
)

// defaults relative to the DataDirectory
const (
	defaultDatabaseDirectory = "data"
	defaultDatabaseName      = "mediclaim.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "mediclaimd.log"
	defaultLogCount     = 10          // number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when log file exceeds this size

	defaultListen         = "127.0.0.1:2136"
	defaultSessionTimeout = 30 // seconds
)

// DatabaseType - where the record store lives
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// Configuration - a node's settings
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string `gluamapper:"pidfile" json:"pidfile"`

	NodeName       string   `gluamapper:"node_name" json:"node_name"`
	Listen         string   `gluamapper:"listen" json:"listen"`
	AnnounceAs     string   `gluamapper:"announce_as" json:"announce_as"`
	Peers          []string `gluamapper:"peers" json:"peers"`
	Roles          []string `gluamapper:"roles" json:"roles"`
	SessionTimeout int      `gluamapper:"session_timeout" json:"session_timeout"`

	Database DatabaseType         `gluamapper:"database" json:"database"`
	Logging  logger.Configuration `gluamapper:"logging" json:"logging"`
}

// GetConfiguration - read, decode and fill in defaults
func GetConfiguration(configurationFileName string) (*Configuration, error) {
	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	options := &Configuration{
		DataDirectory:  ".",
		PidFile:        "", // no PidFile by default
		NodeName:       "mediclaim",
		Listen:         defaultListen,
		SessionTimeout: defaultSessionTimeout,

		Database: DatabaseType{
			Directory: defaultDatabaseDirectory,
			Name:      defaultDatabaseName,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels: map[string]string{
				logger.DefaultTag: "critical",
			},
		},
	}

	err = ParseConfigurationFile(configurationFileName, options)
	if nil != err {
		return nil, err
	}

	// announce the listen address unless told otherwise
	if "" == options.AnnounceAs {
		options.AnnounceAs = options.Listen
	}

	// resolve files relative to the data directory
	if !filepath.IsAbs(options.DataDirectory) {
		options.DataDirectory, err = filepath.Abs(options.DataDirectory)
		if nil != err {
			return nil, err
		}
	}
	options.Database.Directory = resolvePath(options.DataDirectory, options.Database.Directory)
	options.Logging.Directory = resolvePath(options.DataDirectory, options.Logging.Directory)
	if "" != options.PidFile {
		options.PidFile = resolvePath(options.DataDirectory, options.PidFile)
	}

	return options, nil
}

// DatabaseFile - full path of the record store
func (config *Configuration) DatabaseFile() string {
	return filepath.Join(config.Database.Directory, config.Database.Name)
}

func resolvePath(dataDirectory string, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDirectory, path)
}
