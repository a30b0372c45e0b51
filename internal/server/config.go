package server

type HttpConfig struct {
	// Host is the host the control server listens on
	Host string `conf:"host"`

	// Port is the port the control server listens on
	Port int `conf:"port"`

	// H2c enables HTTP/2 cleartext upgrades
	H2c bool `conf:"h2c"`
}
