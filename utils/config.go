package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-sql-driver/mysql"
	"gopkg.in/yaml.v3"
)

// Backend di salvataggio supportati
const (
	BackendCSV    = "csv"
	BackendBolt   = "bolt"
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

// Configurazione del database MySQL (solo backend mysql)
type DatabaseConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	DBName   string `json:"dbname" yaml:"dbname"`
}

// Configurazione del server
type ServerConfig struct {
	Port int `json:"port" yaml:"port"`
}

// Configurazione dello store delle note
type StorageConfig struct {
	Backend string `json:"backend" yaml:"backend"`
	Path    string `json:"path" yaml:"path"`
}

// Configurazione del servizio di ortografia
type SpellerConfig struct {
	URL            string `json:"url" yaml:"url"`
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	Lang           string `json:"lang" yaml:"lang"`
	Options        int    `json:"options" yaml:"options"`
}

// UserSeed è un utente creato all'avvio
type UserSeed struct {
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Configurazione del database utenti
type UsersConfig struct {
	Path string     `json:"path" yaml:"path"`
	Seed []UserSeed `json:"seed" yaml:"seed"`
}

// Configurazione della regola JavaScript opzionale
type PolicyConfig struct {
	Script        string `json:"script" yaml:"script"`
	TimeoutMillis int    `json:"timeoutMillis" yaml:"timeoutMillis"`
}

// Configurazione dei log
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty"`
}

// Configurazione completa
type Config struct {
	Server   ServerConfig   `json:"server" yaml:"server"`
	Storage  StorageConfig  `json:"storage" yaml:"storage"`
	Database DatabaseConfig `json:"database" yaml:"database"`
	Speller  SpellerConfig  `json:"speller" yaml:"speller"`
	Users    UsersConfig    `json:"users" yaml:"users"`
	Policy   PolicyConfig   `json:"policy" yaml:"policy"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// DefaultConfig restituisce la configurazione usata quando manca il file
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 8080,
		},
		Storage: StorageConfig{
			Backend: BackendCSV,
			Path:    "notes.csv",
		},
		Database: DatabaseConfig{
			Host:   "localhost",
			Port:   3306,
			User:   "root",
			DBName: "notes",
		},
		Speller: SpellerConfig{
			URL:            "https://speller.yandex.net/services/spellservice.json/checkText",
			TimeoutSeconds: 10,
		},
		Users: UsersConfig{
			Path: "users.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Carica la configurazione dal file. I file .yaml/.yml sono letti come YAML,
// tutti gli altri come JSON. I campi assenti mantengono i valori di DefaultConfig.
func LoadConfig(filePath string) (*Config, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("errore nell'apertura del file di configurazione: %w", err)
	}
	defer file.Close()

	config := DefaultConfig()
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.NewDecoder(file).Decode(config)
	default:
		err = json.NewDecoder(file).Decode(config)
	}
	if err != nil {
		return nil, fmt.Errorf("errore nella decodifica del file di configurazione: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate controlla i valori che impedirebbero l'avvio
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendCSV, BackendBolt:
		if c.Storage.Path == "" {
			return fmt.Errorf("storage.path obbligatorio per il backend %s", c.Storage.Backend)
		}
	case BackendMySQL, BackendMemory:
	default:
		return fmt.Errorf("backend di storage sconosciuto: %q", c.Storage.Backend)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("porta del server non valida: %d", c.Server.Port)
	}
	if c.Users.Path == "" {
		return fmt.Errorf("users.path obbligatorio")
	}

	return nil
}

// Ottieni la stringa di connessione al database
func (c *DatabaseConfig) GetDSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.DBName
	cfg.ParseTime = true
	return cfg.FormatDSN()
}
