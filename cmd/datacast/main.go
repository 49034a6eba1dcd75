// FILE: lixenwraith/datacast/cmd/datacast/main.go
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/lixenwraith/datacast"
)

// setFlags collects repeated -set name=value arguments
type setFlags []string

func (s *setFlags) String() string {
	return strings.Join(*s, ",")
}

func (s *setFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	*s = append(*s, v)
	return nil
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("datacast: ")

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("datacast", flag.ContinueOnError)
	var (
		schemaPath   = fs.String("schema", "", "schema document (TOML, JSON or YAML)")
		inputPath    = fs.String("input", "", "input document; stdin when empty or \"-\"")
		settingsPath = fs.String("settings", "", "settings document applied over the schema settings")
		envPrefix    = fs.String("env", "", "read declared fields from environment variables with this prefix instead of an input document")
		outFormat    = fs.String("format", "toml", "output format: toml, json or yaml")
		inFormat     = fs.String("input-format", "auto", "stdin format: auto, toml, json or yaml")
		listCasters  = fs.Bool("casters", false, "list the registered caster names and exit")
		sets         setFlags
	)
	fs.Var(&sets, "set", "setting override name=value (repeatable)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	reg := datacast.DefaultRegistry()
	if *listCasters {
		for _, name := range reg.Names() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	if *schemaPath == "" {
		return errors.New("-schema is required")
	}
	schema, err := datacast.LoadSchemaFile(*schemaPath, reg)
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}

	var opts []datacast.CastOption
	if *settingsPath != "" {
		layer, err := datacast.LoadOverridesFile(*settingsPath)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if layer, err = reg.ResolveOverrides(layer); err != nil {
			return err
		}
		opts = append(opts, datacast.WithOverrides(layer))
	}
	if len(sets) > 0 {
		layer := make(datacast.Overrides, len(sets))
		for _, kv := range sets {
			name, value, _ := strings.Cut(kv, "=")
			layer[strings.TrimSpace(name)] = value
		}
		if layer, err = reg.ResolveOverrides(layer); err != nil {
			return err
		}
		opts = append(opts, datacast.WithOverrides(layer))
	}

	format, err := datacast.ParseFormat(*outFormat)
	if err != nil {
		return err
	}

	var cfg *datacast.Config
	switch {
	case *envPrefix != "":
		cfg, err = datacast.LoadEnv(schema, *envPrefix, opts...)
	case *inputPath == "" || *inputPath == "-":
		var inputFormat datacast.Format
		if inputFormat, err = datacast.ParseFormat(*inFormat); err != nil {
			return err
		}
		var input map[string]any
		if input, err = datacast.ReadInput(stdin, inputFormat); err != nil {
			return err
		}
		cfg, err = datacast.Load(input, schema, opts...)
	default:
		cfg, err = datacast.LoadFile(*inputPath, schema, opts...)
	}
	if err != nil {
		return fmt.Errorf("cast: %w", err)
	}

	return cfg.Dump(stdout, format)
}
