package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var introspectCmd subCommand

func init() {
	introspectCmd.Cmd = &cobra.Command{
		Use:   "introspect",
		Short: "Fetch the introspection result of an endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntrospect(cmd)
		},
	}
	flag := introspectCmd.Cmd.Flags()
	flag.StringP("output", "o", "", "File to write the result to; stdout when empty.")

	register(&introspectCmd)
}

func runIntrospect(cmd *cobra.Command) error {
	cfg, logger, err := setup(&introspectCmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	if cfg.Endpoint == "" {
		return fmt.Errorf("introspect needs an endpoint")
	}

	raw, err := newClient(cfg, logger).Introspect(cmd.Context())
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return fmt.Errorf("formatting introspection result: %w", err)
	}
	out.WriteByte('\n')

	path := introspectCmd.Conf.GetString("output")
	if path == "" {
		_, err = cmd.OutOrStdout().Write(out.Bytes())
		return err
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		return err
	}
	logger.Info("introspection result saved", zap.String("path", path), zap.Int("bytes", out.Len()))
	return nil
}
