package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gnoverse/endlint/internal/check"
	"github.com/gnoverse/endlint/internal/policy"
	tt "github.com/gnoverse/endlint/internal/types"
	"github.com/gnoverse/endlint/lint"
)

var forceInit bool

// initCmd: endlint init
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new linter configuration file",
	Run: func(cmd *cobra.Command, args []string) {
		path := cfgFile
		if path == "" {
			path = lint.DefaultConfigFiles[0]
		}
		if err := initConfigurationFile(path, forceInit); err != nil {
			exitWithError("Error initializing config file", err)
		}
		fmt.Printf("Configuration file created: %s\n", path)
	},
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing configuration file")
}

// defaultConfig spells out every option with its built-in value.
func defaultConfig() lint.Config {
	prefix := check.DefaultPrefix
	spacing := check.DefaultSpacing
	return lint.Config{
		Name: "endlint",
		Rules: map[string]tt.ConfigRule{
			"closing-declaration-comment": {
				Severity:      tt.SeverityError,
				CommentFormat: policy.DefaultCommentFormat,
				CommentPrefix: &prefix,
				Spacing:       &spacing,
			},
			"long-condition-closing-comment": {
				Severity:      tt.SeverityError,
				LineLimit:     policy.DefaultLineLimit,
				CommentFormat: policy.DefaultCommentFormat,
				CommentPrefix: &prefix,
				Spacing:       &spacing,
			},
		},
	}
}

func initConfigurationFile(configurationPath string, force bool) error {
	if _, err := os.Stat(configurationPath); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configurationPath)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	config := defaultConfig()

	var (
		d   []byte
		err error
	)
	if strings.EqualFold(filepath.Ext(configurationPath), ".toml") {
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(config)
		d = []byte(b.String())
	} else {
		d, err = yaml.Marshal(config)
	}
	if err != nil {
		return err
	}

	return os.WriteFile(configurationPath, d, 0o644)
}
