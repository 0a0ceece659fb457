package valkey

import (
	"testing"
	"time"

	"github.com/Talin12/DataSage/internal/config"
)

func TestClientOption(t *testing.T) {
	opt := clientOption(config.ValkeyConfig{
		Addr:        "cache:6380",
		Password:    "secret",
		DB:          2,
		DialTimeout: 3 * time.Second,
	})

	if len(opt.InitAddress) != 1 || opt.InitAddress[0] != "cache:6380" {
		t.Errorf("InitAddress = %v", opt.InitAddress)
	}
	if opt.Password != "secret" {
		t.Errorf("Password = %q", opt.Password)
	}
	if opt.SelectDB != 2 {
		t.Errorf("SelectDB = %d, want 2", opt.SelectDB)
	}
	if opt.ClientName != ClientName {
		t.Errorf("ClientName = %q, want %q", opt.ClientName, ClientName)
	}
	if opt.Dialer.Timeout != 3*time.Second {
		t.Errorf("Dialer.Timeout = %s, want 3s", opt.Dialer.Timeout)
	}
}
