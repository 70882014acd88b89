package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "stockbook-api", cfg.App.Name)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "0.18", cfg.Sales.TaxRate.String())
	assert.Equal(t, time.April, cfg.Sales.FiscalStartMonth)
	assert.Equal(t, []string{"INV-", "INV"}, cfg.Sales.LegacyInvoicePrefixes)
	assert.Equal(t, 3, cfg.Sales.NumberingRetries)
	assert.Equal(t, 3, cfg.Sales.MaxTxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Sales.LockTTL)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoadFrom_EnvFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	content := "DB_DRIVER=mysql\nDB_USER=shop\nDB_PASSWORD=secret\nDB_HOST=db\nDB_PORT=3306\nDB_NAME=stock\n" +
		"SALES_TAX_RATE=0.15\nSALES_FISCAL_START_MONTH=13\nCORS_ALLOWED_ORIGINS=https://a.example, https://b.example\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg := LoadFrom(file)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "shop:secret@tcp(db:3306)/stock?charset=utf8mb4&parseTime=True&loc=UTC", cfg.Database.DSN())
	assert.Equal(t, "0.15", cfg.Sales.TaxRate.String())
	assert.Equal(t, time.April, cfg.Sales.FiscalStartMonth, "out-of-range month falls back to April")
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadFrom_EnvironmentWins(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/stock.db")
	t.Setenv("SALES_TAX_RATE", "not-a-number")

	cfg := LoadFrom(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "/tmp/stock.db", cfg.Database.DSN())
	assert.Equal(t, "0.18", cfg.Sales.TaxRate.String())
}

func TestDatabaseConfig_PostgresDSN(t *testing.T) {
	c := DatabaseConfig{Driver: "postgres", Host: "h", User: "u", Password: "p", Name: "n", Port: "5432", SSLMode: "disable", Timezone: "UTC"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable TimeZone=UTC", c.DSN())
}
