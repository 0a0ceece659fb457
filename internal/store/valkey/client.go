package valkey

import (
	"context"
	"fmt"
	"net"

	"github.com/valkey-io/valkey-go"

	"github.com/Talin12/DataSage/internal/config"
)

// ClientName identifies DataSage connections in CLIENT LIST.
const ClientName = "datasage"

// NewClient connects to Valkey and pings it within the dial timeout. Callers
// treat an error as "cache and diagnostics stream disabled".
func NewClient(ctx context.Context, cfg config.ValkeyConfig) (valkey.Client, error) {
	client, err := valkey.NewClient(clientOption(cfg))
	if err != nil {
		return nil, fmt.Errorf("create valkey client %s: %w", cfg.Addr, err)
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping valkey %s: %w", cfg.Addr, err)
	}
	return client, nil
}

func clientOption(cfg config.ValkeyConfig) valkey.ClientOption {
	return valkey.ClientOption{
		InitAddress: []string{cfg.Addr},
		Password:    cfg.Password,
		SelectDB:    cfg.DB,
		ClientName:  ClientName,
		Dialer:      net.Dialer{Timeout: cfg.DialTimeout},
	}
}
