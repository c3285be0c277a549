package server

// DBConfig carries database settings for the server.
type DBConfig struct {
	Driver      string
	DSN         string
	TablePrefix string
}
