package postgres

import (
	"testing"
	"time"
)

func TestPoolConfig_WithDefaults(t *testing.T) {
	p := PoolConfig{}.withDefaults()

	if p.MaxOpenConns != 40 {
		t.Errorf("expected MaxOpenConns 40, got %d", p.MaxOpenConns)
	}
	if p.MaxIdleConns != 10 {
		t.Errorf("expected MaxIdleConns 10, got %d", p.MaxIdleConns)
	}
	if p.ConnMaxLifetime != time.Hour {
		t.Errorf("expected ConnMaxLifetime 1h, got %s", p.ConnMaxLifetime)
	}
	if p.ConnMaxIdleTime != 10*time.Minute {
		t.Errorf("expected ConnMaxIdleTime 10m, got %s", p.ConnMaxIdleTime)
	}
}

func TestPoolConfig_WithDefaults_KeepsExplicitValues(t *testing.T) {
	explicit := PoolConfig{
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Minute,
		ConnMaxIdleTime: time.Second,
	}

	if got := explicit.withDefaults(); got != explicit {
		t.Fatalf("explicit pool config must not be overridden, got %+v", got)
	}
}
