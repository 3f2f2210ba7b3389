package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/itsatony/go-liquor"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// writeOutput writes content to a file or stdout
func writeOutput(path string, data []byte, stdout io.Writer) error {
	if path == FlagDefaultOutput {
		_, err := stdout.Write(data)
		return err
	}

	return os.WriteFile(path, data, FilePermissions)
}

// loadData parses render data from a JSON string or a JSON/YAML file.
// No data yields an empty map.
func loadData(jsonStr, filePath string) (map[string]any, error) {
	result := make(map[string]any)

	switch {
	case filePath != "":
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		ext := strings.ToLower(filepath.Ext(filePath))
		if ext == ExtYAML || ext == ExtYML {
			if err := yaml.Unmarshal(data, &result); err != nil {
				return nil, err
			}
			return result, nil
		}
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
	case jsonStr != "":
		if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// newEngine builds an engine from the persistent --config and --verbose
// flags
func newEngine(cmd *cobra.Command, strict bool) (*liquor.Engine, error) {
	var opts []liquor.Option
	if verbose, _ := cmd.Flags().GetBool(FlagVerbose); verbose {
		opts = append(opts, liquor.WithLogger(newLogger(cmd.ErrOrStderr())))
	}
	if strict {
		opts = append(opts, liquor.WithStrictFilters(true))
	}

	configPath, _ := cmd.Flags().GetString(FlagConfig)
	if configPath == "" {
		return liquor.New(opts...)
	}
	cfg, err := liquor.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return liquor.NewFromConfig(cfg, opts...)
}

// newLogger writes human-readable debug logs to w
func newLogger(w io.Writer) *zap.Logger {
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(w), zapcore.DebugLevel))
}
