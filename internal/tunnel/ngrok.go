// Package tunnel exposes the API through an ngrok HTTP endpoint.
package tunnel

import (
	"context"
	"errors"
	"fmt"

	"golang.ngrok.com/ngrok"
	"golang.ngrok.com/ngrok/config"
)

var ErrNoAuthToken = errors.New("tunnel: ngrok auth token not set")

// Listen opens an ngrok HTTP endpoint in region. The returned tunnel is a
// net.Listener; its URL method reports the public address.
func Listen(ctx context.Context, authToken, region string) (ngrok.Tunnel, error) {
	if authToken == "" {
		return nil, ErrNoAuthToken
	}

	opts := []ngrok.ConnectOption{ngrok.WithAuthtoken(authToken)}
	if region != "" {
		opts = append(opts, ngrok.WithRegion(region))
	}

	tun, err := ngrok.Listen(ctx, config.HTTPEndpoint(), opts...)
	if err != nil {
		return nil, fmt.Errorf("tunnel: failed to start ngrok endpoint: %w", err)
	}
	return tun, nil
}
