package server

import "go.uber.org/fx"

// Module provides a http server listening on the configured address,
// serving every handler of the "handlers" group.
func Module(config HttpConfig) fx.Option {
	return fx.Module("server",
		// provide config
		fx.Supply(config),
		// provide server
		fx.Provide(NewLifecycleServer),
		// invoke server
		fx.Invoke(func(*HttpServer) {}),
	)
}
