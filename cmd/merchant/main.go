package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/tdex-network/merchantd/pkg/httputil"
	"github.com/urfave/cli/v2"
)

const requestTimeout = 30 * time.Second

var (
	merchantDataDir = btcutil.AppDataDir("merchant-cli", false)
	statePath       = filepath.Join(merchantDataDir, "state.json")
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "merchant CLI"
	app.Usage = "Command line interface for merchantd operators"
	app.Commands = append(
		app.Commands,
		&config,
		&neworder,
		&getorder,
		&listorders,
		&checkorder,
		&convert,
		&addwebhook,
		&listwebhooks,
		&removewebhook,
		&derive,
		&uri,
	)
	return app
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(merchantDataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(merchantDataDir, os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	jsonString, err := json.Marshal(merge(currentData, data))
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

// callDaemon makes a request to the daemon REST API and returns the response
// body, or an error with the message returned by the daemon.
func callDaemon(method, path string, body interface{}) (string, error) {
	state, err := getState()
	if err != nil {
		return "", err
	}
	server, ok := state["rpcserver"]
	if !ok {
		return "", errors.New("set rpcserver with `config set rpcserver`")
	}

	var payload string
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return "", err
		}
		payload = string(buf)
	}

	client := httputil.NewClient(requestTimeout)
	status, resp, err := client.NewHTTPRequest(
		context.Background(), method, strings.TrimSuffix(server, "/")+path,
		payload, map[string]string{"Content-Type": "application/json"},
	)
	if err != nil {
		return "", fmt.Errorf("unable to connect to merchantd: %w", err)
	}
	if status >= http.StatusBadRequest {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal([]byte(resp), &errResp) == nil && errResp.Error != "" {
			return "", fmt.Errorf("%s (%d)", errResp.Error, status)
		}
		return "", fmt.Errorf("request failed with status %d", status)
	}
	return resp, nil
}

func printRespJSON(resp string) {
	if resp == "" {
		return
	}
	var out bytes.Buffer
	if err := json.Indent(&out, []byte(resp), "", "\t"); err != nil {
		fmt.Println(resp)
		return
	}
	fmt.Println(out.String())
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[merchant] %v\n", err)
	}
	os.Exit(1)
}
