package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fossabot/wechat-1/errors"
	"github.com/fossabot/wechat-1/httpclient"
	"github.com/fossabot/wechat-1/response"
	"github.com/spf13/cobra"
)

func newGetCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <path> [key=value...]",
		Short: "Issue a GET request with the access token in the query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			s, err := opts.newSession(cmd)
			if err != nil {
				return err
			}
			result, err := s.client.Get(cmd.Context(), args[0], query)
			return s.printResult(result, err)
		},
	}
}

func newPostCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "post <path> [key=value...]",
		Short: "Issue a form POST request",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			s, err := opts.newSession(cmd)
			if err != nil {
				return err
			}
			result, err := s.client.Post(cmd.Context(), args[0], form)
			return s.printResult(result, err)
		},
	}
}

func newPostJSONCmd(opts *rootOptions) *cobra.Command {
	var query map[string]string

	cmd := &cobra.Command{
		Use:   "post-json <path> <json>",
		Short: "Issue a POST request with a JSON body",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			decoder := json.NewDecoder(strings.NewReader(args[1]))
			decoder.UseNumber()
			if err := decoder.Decode(&body); err != nil {
				return fmt.Errorf("invalid JSON body: %w", err)
			}
			s, err := opts.newSession(cmd)
			if err != nil {
				return err
			}
			result, err := s.client.PostJSON(cmd.Context(), args[0], body, query)
			return s.printResult(result, err)
		},
	}
	cmd.Flags().StringToStringVar(&query, "query", nil, "query parameters, e.g. --query type=image")
	return cmd
}

func newUploadCmd(opts *rootOptions) *cobra.Command {
	var files, fields, query map[string]string

	cmd := &cobra.Command{
		Use:   "upload <path>",
		Short: "Issue a multipart upload",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(files) == 0 {
				return fmt.Errorf("at least one --file is required")
			}
			s, err := opts.newSession(cmd)
			if err != nil {
				return err
			}
			result, err := s.client.Upload(cmd.Context(), args[0], files, fields, query)
			return s.printResult(result, err)
		},
	}
	cmd.Flags().StringToStringVar(&files, "file", nil, "file parts as field=path")
	cmd.Flags().StringToStringVar(&fields, "field", nil, "form parts as field=value")
	cmd.Flags().StringToStringVar(&query, "query", nil, "query parameters")
	return cmd
}

func newRawCmd(opts *rootOptions) *cobra.Command {
	var withStatus bool

	cmd := &cobra.Command{
		Use:   "raw <method> <path> [key=value...]",
		Short: "Issue a request and print the unshaped response body",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parsePairs(args[2:])
			if err != nil {
				return err
			}
			s, err := opts.newSession(cmd)
			if err != nil {
				return err
			}
			resp, err := s.client.RequestRaw(cmd.Context(), args[1], strings.ToUpper(args[0]), httpclient.RequestOptions{Query: query})
			if err != nil {
				return s.fail(err)
			}
			if withStatus {
				if err := s.printer.Info("%s %s: %s", resp.Method, resp.URL, resp.Status); err != nil {
					return err
				}
			}
			return s.printer.Message("%s", resp.String())
		},
	}
	cmd.Flags().BoolVar(&withStatus, "status", false, "print the status line before the body")
	return cmd
}

func (s *session) fail(err error) error {
	_ = s.printer.Error("%v", err)
	if te, ok := errors.AsTransportError(err); ok && te.Temporary() {
		_ = s.printer.Warning("the platform reported a temporary failure (%d), try again later", te.StatusCode)
	}
	return err
}

// printResult writes the shaped result as JSON. A non-zero errcode is reported as a warning.
func (s *session) printResult(result *response.Result, err error) error {
	if err != nil {
		return s.fail(err)
	}

	out, err := renderResult(result)
	if err != nil {
		return s.fail(err)
	}
	if err := s.printer.Message("%s", out); err != nil {
		return err
	}

	if code := result.ErrCode(); code != 0 {
		return s.printer.Warning("errcode %d: %s", code, result.ErrMsg())
	}
	return nil
}

func renderResult(result *response.Result) (string, error) {
	switch result.Type() {
	case response.TypeRaw:
		return result.Raw().String(), nil
	case response.TypeJSON:
		return result.JSON(), nil
	case response.TypeCollection:
		return result.Collection().ToJSON()
	}

	data, err := json.MarshalIndent(result.Value(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render response: %w", err)
	}
	return string(data), nil
}
