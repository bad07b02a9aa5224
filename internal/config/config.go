package config

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
)

type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
}

type RabbitMQ struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
}

type Cooldown struct {
	Dir string // pebble directory for per-identity last-order state
}

type Server struct {
	DrainSeconds int // graceful-shutdown window for in-flight requests
}

type App struct {
	Database Database
	Rabbit   RabbitMQ
	Cooldown Cooldown
	Server   Server
}

// Load reads the config file with a small, purpose-built YAML reader: two
// levels, `section:` headers followed by `key: value` pairs.
func Load(path string) (App, error) {
	f, err := os.Open(path)
	if err != nil {
		return App{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := App{
		Database: Database{Port: 5432, SSLMode: "disable", MaxConns: 10},
		Rabbit:   RabbitMQ{Port: 5672, VHost: "/"},
		Cooldown: Cooldown{Dir: "data/cooldown"},
		Server:   Server{DrainSeconds: 5},
	}

	var section string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, ":") && !strings.Contains(line, " ") {
			section = strings.TrimSuffix(line, ":")
			continue
		}
		kv := strings.SplitN(line, ":", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.Trim(strings.TrimSpace(kv[1]), `"'`)

		switch section {
		case "database":
			assignDB(&cfg.Database, key, val)
		case "rabbitmq":
			assignMQ(&cfg.Rabbit, key, val)
		case "cooldown":
			if key == "dir" && val != "" {
				cfg.Cooldown.Dir = val
			}
		case "server":
			if key == "drain_seconds" {
				cfg.Server.DrainSeconds = atoi(val, 5)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return App{}, fmt.Errorf("read config: %w", err)
	}

	if cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.Database == "" {
		return App{}, fmt.Errorf("database config incomplete")
	}
	if cfg.Rabbit.Host == "" || cfg.Rabbit.User == "" {
		return App{}, fmt.Errorf("rabbitmq config incomplete")
	}
	return cfg, nil
}

func assignDB(d *Database, key, val string) {
	switch key {
	case "host":
		d.Host = val
	case "port":
		d.Port = atoi(val, 5432)
	case "user":
		d.User = val
	case "password":
		d.Password = val
	case "database":
		d.Database = val
	case "sslmode":
		if val != "" {
			d.SSLMode = val
		}
	case "max_conns":
		d.MaxConns = atoi(val, 10)
	}
}

func assignMQ(m *RabbitMQ, key, val string) {
	switch key {
	case "host":
		m.Host = val
	case "port":
		m.Port = atoi(val, 5672)
	case "user":
		m.User = val
	case "password":
		m.Password = val
	case "vhost":
		if val != "" {
			m.VHost = val
		}
	}
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// FindConfig locates the config file next to the binary or the shipped
// example, in that order.
func FindConfig() (string, error) {
	for _, p := range []string{"config.yaml", "deploy/config.example.yaml"} {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fs.ErrNotExist
}
