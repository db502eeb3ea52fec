package main

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/arkade-os/nftbridge/internal/interface/grpc/handlers"
	"github.com/arkade-os/nftbridge/internal/interface/grpc/interceptors"
	"github.com/arkade-os/nftbridge/pkg/macaroons"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

type client struct {
	url      string
	macaroon string
	http     *http.Client
}

func newClient(ctx *cli.Context) (*client, error) {
	url := stringOption(ctx, urlFlagName)
	tlsConfig, err := getTLSConfig(ctx, url)
	if err != nil {
		return nil, err
	}
	macaroon, err := getMacaroon(ctx)
	if err != nil {
		return nil, err
	}
	return &client{
		url:      strings.TrimSuffix(url, "/"),
		macaroon: macaroon,
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: tlsConfig,
			},
		},
	}, nil
}

// stringOption prefers the flag when set, then the NFTBRIDGE_ env var, then the flag default.
func stringOption(ctx *cli.Context, name string) string {
	if !ctx.IsSet(name) && viper.IsSet(name) {
		return viper.GetString(name)
	}
	return ctx.String(name)
}

func get[T any](c *client, path string) (result T, err error) {
	err = c.do(http.MethodGet, path, nil, &result)
	return
}

func post[T any](c *client, path string, body any) (result T, err error) {
	err = c.do(http.MethodPost, path, body, &result)
	return
}

func (c *client) do(method, path string, body, result any) error {
	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, c.url+path, payload)
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	// nolint
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		errResp := handlers.ErrorResponse{}
		if err := json.Unmarshal(buf, &errResp); err != nil || errResp.Message == "" {
			return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, buf)
		}
		return fmt.Errorf("%s", errResp.Message)
	}
	if resp.StatusCode == http.StatusNoContent || result == nil {
		return nil
	}
	return json.Unmarshal(buf, result)
}

func (c *client) authorize(req *http.Request) {
	if len(c.macaroon) > 0 {
		req.Header.Add(interceptors.MacaroonHeader, c.macaroon)
	}
}

// getMacaroon prefers the --macaroon flag, then the operator macaroon of the datadir. Without
// either requests go unauthenticated.
func getMacaroon(ctx *cli.Context) (string, error) {
	if macaroon := stringOption(ctx, macaroonFlagName); macaroon != "" {
		return macaroon, nil
	}
	path := filepath.Join(stringOption(ctx, datadirFlagName), macaroonDir, macaroonFile)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return macaroons.ReadFile(path)
}

func printJSON(v any) error {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(buf))
	return nil
}

func getTLSConfig(ctx *cli.Context, url string) (*tls.Config, error) {
	if strings.HasPrefix(url, "http://") {
		return nil, nil
	}

	certPath := filepath.Join(stringOption(ctx, datadirFlagName), tlsDir, tlsCertFile)
	buf, err := os.ReadFile(certPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	caCertPool := x509.NewCertPool()
	if ok := caCertPool.AppendCertsFromPEM(buf); !ok {
		return nil, fmt.Errorf("failed to parse tls cert")
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS12,
		RootCAs:    caCertPool,
	}, nil
}
