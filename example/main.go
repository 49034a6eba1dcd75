// FILE: lixenwraith/datacast/example/main.go
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/lixenwraith/datacast"
)

// AppConfig is the typed view scanned from the cast result
type AppConfig struct {
	Server struct {
		Host     string `toml:"host"`
		Port     int    `toml:"port"`
		LogLevel string `toml:"log_level"`
	} `toml:"server"`
	Tracing bool          `toml:"tracing"`
	Timeout time.Duration `toml:"timeout"`
}

const initialInput = `
tracing = "yes"
timeout = "2s"

[server]
host = "localhost"
port = "8080"
log_level = " INFO "
`

const updatedInput = `
tracing = "off"
timeout = "2s"

[server]
host = "localhost"
port = "8080"
log_level = "debug"
`

func main() {
	log.SetFlags(log.Ltime)

	dir, err := os.MkdirTemp("", "datacast-example")
	if err != nil {
		log.Fatalf("❌ Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(dir)
	inputPath := filepath.Join(dir, "app.toml")

	// =========================================================================
	// PART 1: DECLARE THE SCHEMA AND CAST A DOCUMENT
	// =========================================================================
	log.Println("➡️  PART 1: Casting the input document...")

	schema := datacast.NewSchemaBuilder().
		Field("server.host", datacast.String).
		Field("server.port", datacast.Int).
		FieldWithDefault("server.log_level", "info", datacast.Strip, datacast.Lower).
		FieldWithDefault("tracing", false, datacast.ParseBool).
		FieldWithDefault("timeout", 5*time.Second, datacast.Duration).
		WithSetting(datacast.SettingOnExtra, datacast.OptionRaise).
		MustBuild()

	if err := os.WriteFile(inputPath, []byte(initialInput), 0644); err != nil {
		log.Fatalf("❌ Failed to write input: %v", err)
	}

	cfg, err := datacast.LoadFile(inputPath, schema)
	if err != nil {
		log.Fatalf("❌ Cast failed: %v", err)
	}
	printCurrentState(cfg, "Initial State")

	// =========================================================================
	// PART 2: ENVIRONMENT INPUT
	// APP_SERVER_PORT feeds server.port; undeclared variables are never read.
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 2: Casting environment variables...")

	env := datacast.EnvAdapter{
		Prefix: "APP_",
		Lookup: func(key string) (string, bool) {
			vars := map[string]string{
				"APP_SERVER_HOST": "0.0.0.0",
				"APP_SERVER_PORT": "9090",
				"APP_TRACING":     "on",
			}
			v, ok := vars[key]
			return v, ok
		},
	}
	envCfg, err := env.Load(schema)
	if err != nil {
		log.Fatalf("❌ Env cast failed: %v", err)
	}
	printCurrentState(envCfg, "Environment State")

	// =========================================================================
	// PART 3: WATCH THE INPUT FILE
	// =========================================================================
	log.Println("---")
	log.Println("➡️  PART 3: Testing the file watcher...")

	w, err := datacast.WatchFile(inputPath, schema, datacast.WatchOptions{
		PollInterval: 250 * time.Millisecond,
		Debounce:     100 * time.Millisecond,
	})
	if err != nil {
		log.Fatalf("❌ Watch failed: %v", err)
	}
	defer w.Stop()
	changes := w.Subscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(time.Second)
		if err := os.WriteFile(inputPath, []byte(updatedInput), 0644); err != nil {
			log.Fatalf("❌ Modifier failed to write input: %v", err)
		}
	}()

	select {
	case name := <-changes:
		log.Printf("✅ Watcher detected a change for field: '%s'", name)
		current := w.Current()
		if level, _ := current.String("server.log_level"); level != "debug" {
			log.Fatalf("❌ VERIFICATION FAILED: expected log_level 'debug', got '%s'", level)
		}
		printCurrentState(current, "Final State (Updated by Watcher)")
	case <-time.After(5 * time.Second):
		log.Fatalf("❌ Timed out waiting for watcher notification")
	}

	wg.Wait()
}

// printCurrentState scans the cast result into AppConfig and prints it
func printCurrentState(cfg *datacast.Config, title string) {
	var app AppConfig
	if err := cfg.Scan(&app); err != nil {
		log.Fatalf("❌ Scan failed: %v", err)
	}

	fmt.Println("   --------------------------------------------------")
	fmt.Printf("             %s\n", title)
	fmt.Println("   --------------------------------------------------")
	fmt.Printf("     Server Host:      %s\n", app.Server.Host)
	fmt.Printf("     Server Port:      %d\n", app.Server.Port)
	fmt.Printf("     Server Log Level: %s\n", app.Server.LogLevel)
	fmt.Printf("     Tracing:          %v\n", app.Tracing)
	fmt.Printf("     Timeout:          %v\n", app.Timeout)
	fmt.Println("   --------------------------------------------------")
}
