// FILE: lixenwraith/datacast/config_test.go
package datacast

import (
	"bytes"
	"encoding/json"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func serverSchema() *Schema {
	return NewSchemaBuilder().
		Field("server.host", String).
		FieldWithDefault("server.port", 8080, Int).
		FieldWithDefault("debug", false, ParseBool).
		FieldWithDefault("ratio", 0.5, Float).
		MustBuild()
}

func TestConfigLoad(t *testing.T) {
	cfg, err := Load(map[string]any{"server.host": "db", "server.port": "5432", "debug": "yes"}, serverSchema())
	require.NoError(t, err)

	assert.Equal(t, []string{"server.host", "server.port", "debug", "ratio"}, cfg.Keys())
	assert.Equal(t, 4, cfg.Len())

	v, ok := cfg.Get("server.port")
	assert.True(t, ok)
	assert.Equal(t, 5432, v)

	_, ok = cfg.Get("missing")
	assert.False(t, ok)

	t.Run("CastErrorPropagates", func(t *testing.T) {
		_, err := Load(map[string]any{"server.host": "db", "server.port": "x"}, serverSchema())
		assert.ErrorIs(t, err, ErrCast)
	})
}

func TestConfigTypedGetters(t *testing.T) {
	cfg, err := Load(map[string]any{
		"server.host": "db",
		"flag":        "off",
	}, serverSchema(), WithSetting(SettingOnExtra, OptionStore))
	require.NoError(t, err)

	t.Run("String", func(t *testing.T) {
		s, err := cfg.String("server.port")
		require.NoError(t, err)
		assert.Equal(t, "8080", s)
	})

	t.Run("Int64", func(t *testing.T) {
		n, err := cfg.Int64("server.port")
		require.NoError(t, err)
		assert.Equal(t, int64(8080), n)

		_, err = cfg.Int64("server.host")
		assert.Error(t, err)
	})

	t.Run("Float64", func(t *testing.T) {
		f, err := cfg.Float64("ratio")
		require.NoError(t, err)
		assert.Equal(t, 0.5, f)
	})

	t.Run("Bool", func(t *testing.T) {
		b, err := cfg.Bool("flag")
		require.NoError(t, err)
		assert.False(t, b, "strings are parsed as bool words")

		b, err = cfg.Bool("server.port")
		require.NoError(t, err)
		assert.True(t, b)
	})

	t.Run("NotStored", func(t *testing.T) {
		_, err := cfg.String("nope")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "key not stored")
	})
}

func TestConfigSet(t *testing.T) {
	cfg, err := Load(map[string]any{"server.host": "db"}, serverSchema())
	require.NoError(t, err)

	require.NoError(t, cfg.Set("server.host", "other"))
	v, _ := cfg.Get("server.host")
	assert.Equal(t, "other", v)

	assert.Error(t, cfg.Set("undeclared", 1))
}

func TestConfigScan(t *testing.T) {
	type Target struct {
		Server struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		} `toml:"server"`
		Debug   bool          `toml:"debug"`
		Ratio   float64       `toml:"ratio"`
		Timeout time.Duration `toml:"timeout"`
		Addr    net.IP        `toml:"addr"`
		Link    *url.URL      `toml:"link"`
		Tags    []string      `toml:"tags"`
	}

	cfg, err := Load(map[string]any{
		"server.host": "db",
		"debug":       "true",
		"timeout":     "3s",
		"addr":        "10.0.0.1",
		"link":        "https://example.com/path",
		"tags":        "a,b",
	}, serverSchema(), WithSetting(SettingOnExtra, OptionStore))
	require.NoError(t, err)

	var target Target
	require.NoError(t, cfg.Scan(&target))
	assert.Equal(t, "db", target.Server.Host)
	assert.Equal(t, 8080, target.Server.Port)
	assert.True(t, target.Debug)
	assert.Equal(t, 0.5, target.Ratio)
	assert.Equal(t, 3*time.Second, target.Timeout)
	assert.Equal(t, "10.0.0.1", target.Addr.String())
	require.NotNil(t, target.Link)
	assert.Equal(t, "example.com", target.Link.Host)
	assert.Equal(t, []string{"a", "b"}, target.Tags)

	t.Run("NonPointer", func(t *testing.T) {
		assert.Error(t, cfg.Scan(target))
	})

	t.Run("IntoMap", func(t *testing.T) {
		var m map[string]any
		require.NoError(t, cfg.Scan(&m))
		server, ok := m["server"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "db", server["host"])
	})
}

func TestInputFromStruct(t *testing.T) {
	type Source struct {
		Server struct {
			Host string `toml:"host"`
			Port int    `toml:"port"`
		} `toml:"server"`
		Name string `toml:"name"`
	}
	var src Source
	src.Server.Host = "h"
	src.Server.Port = 1
	src.Name = "n"

	input, err := InputFromStruct(&src)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"server.host": "h", "server.port": 1, "name": "n"}, input)

	_, err = InputFromStruct(42)
	assert.Error(t, err)

	var nilSrc *Source
	_, err = InputFromStruct(nilSrc)
	assert.Error(t, err)
}

func TestConfigOutput(t *testing.T) {
	cfg, err := Load(map[string]any{"server.host": "db"}, serverSchema())
	require.NoError(t, err)

	t.Run("SaveTOML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "out.toml")
		require.NoError(t, cfg.Save(path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, toml.Unmarshal(data, &decoded))
		server := decoded["server"].(map[string]any)
		assert.Equal(t, "db", server["host"])
		assert.Equal(t, int64(8080), server["port"])
		assert.Equal(t, false, decoded["debug"])

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0644), info.Mode().Perm())
	})

	t.Run("DumpJSON", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cfg.Dump(&buf, FormatJSON))

		var decoded map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, 0.5, decoded["ratio"])
		assert.Equal(t, "db", decoded["server"].(map[string]any)["host"])
	})

	t.Run("DumpYAML", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, cfg.Dump(&buf, FormatYAML))

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
		assert.Equal(t, 8080, decoded["server"].(map[string]any)["port"])
	})

	t.Run("DumpUnknownFormat", func(t *testing.T) {
		assert.Error(t, cfg.Dump(&bytes.Buffer{}, Format("xml")))
	})

	t.Run("Debug", func(t *testing.T) {
		out := cfg.Debug()
		assert.Contains(t, out, "server.host")
		assert.Contains(t, out, `"db"`)
		assert.Contains(t, out, "(int) 8080")
	})
}

func TestConfigCloneAndDiff(t *testing.T) {
	cfg, err := Load(map[string]any{"server.host": "db"}, serverSchema())
	require.NoError(t, err)

	clone := cfg.Clone()
	assert.Empty(t, cfg.Diff(clone))

	require.NoError(t, clone.Set("server.port", 9090))
	require.NoError(t, clone.Set("debug", true))
	assert.Equal(t, []string{"debug", "server.port"}, cfg.Diff(clone))

	v, _ := cfg.Get("server.port")
	assert.Equal(t, 8080, v, "clone is independent")

	other, err := Load(map[string]any{"a": []string{"x"}}, MustSchema(Required("a")))
	require.NoError(t, err)
	same, err := Load(map[string]any{"a": []string{"x"}}, MustSchema(Required("a")))
	require.NoError(t, err)
	assert.Empty(t, other.Diff(same), "deep equality")
	assert.Len(t, other.Diff(cfg), 5, "disjoint names all differ")
}

func TestConfigConcurrentAccess(t *testing.T) {
	cfg, err := Load(map[string]any{"server.host": "db"}, serverSchema())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = cfg.Set("server.port", i)
		}(i)
		go func() {
			defer wg.Done()
			_, _ = cfg.Int64("server.port")
			_ = cfg.AsMap()
		}()
	}
	wg.Wait()
}
