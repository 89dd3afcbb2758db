package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deppfellow/tg-miniapp/internal/gateway"
)

func newInvokeCommand() *cobra.Command {
	var eventPath string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Serve a single HTTP-shaped event and print the response",
		Long: "invoke reads one event ({httpMethod, headers, pathParams.proxy, body}) from stdin " +
			"or --event, runs it through the API and writes the response " +
			"({statusCode, headers, body, isBase64Encoded}) to stdout as JSON.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			event, err := readEvent(cmd.InOrStdin(), eventPath)
			if err != nil {
				return err
			}

			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.loggerService.Shutdown()

			srv, e, err := a.newServer()
			if err != nil {
				return err
			}
			defer func() {
				if err := srv.Close(); err != nil {
					a.logger.Error().Err(err).Msg("failed to release resources")
				}
			}()

			res, err := gateway.Invoke(cmd.Context(), e, event)
			if err != nil {
				return err
			}

			return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
		},
	}

	cmd.Flags().StringVar(&eventPath, "event", "", "read the event from this file instead of stdin")
	return cmd
}

func readEvent(stdin io.Reader, path string) (gateway.Event, error) {
	var event gateway.Event

	r := stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return event, fmt.Errorf("failed to open event file: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return event, fmt.Errorf("failed to decode event: %w", err)
	}
	return event, nil
}
