package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const bip84Zpub = "zpub6rFR7y4Q2AijBEqTUquhVz398htDFrtymD9xYYfG1m4wAcvPhXNfE3EfH1r1ADqtfSdVCToUG868RvUUkgDKf31mGDtKsAYz2oz2AGutZYs"

func runCLICommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	out := &bytes.Buffer{}
	app := newApp()
	app.Writer = out
	err := app.Run(append([]string{"merchant"}, args...))
	return strings.TrimSpace(out.String()), err
}

func TestDerive(t *testing.T) {
	address, err := runCLICommand(t, "derive", "--xpub", bip84Zpub)
	require.NoError(t, err)
	require.Equal(t, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", address)

	_, err = runCLICommand(
		t, "derive", "--xpub", bip84Zpub, "--address_type", "eip55",
	)
	require.Error(t, err)

	_, err = runCLICommand(t, "derive", "--asset", "DOGE", "--xpub", bip84Zpub)
	require.Error(t, err)
}

func TestURI(t *testing.T) {
	paymentURI, err := runCLICommand(
		t, "uri", "--address", "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
		"--amount", "0.00100000",
	)
	require.NoError(t, err)
	require.Equal(
		t, "bitcoin:bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu?amount=0.001",
		paymentURI,
	)
}

func TestCallDaemon(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if req.URL.Path == "/v1/orders/missing" {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(`{"error":"order not found"}`))
				return
			}
			w.Write([]byte(`{"id":"order1"}`))
		},
	))
	defer server.Close()

	merchantDataDir = t.TempDir()
	statePath = filepath.Join(merchantDataDir, "state.json")

	_, err := callDaemon(http.MethodGet, "/v1/orders/order1", nil)
	require.Error(t, err)

	require.NoError(t, setState(map[string]string{"rpcserver": server.URL}))

	resp, err := callDaemon(http.MethodGet, "/v1/orders/order1", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"order1"}`, resp)

	_, err = callDaemon(http.MethodGet, "/v1/orders/missing", nil)
	require.ErrorContains(t, err, "order not found")
}
