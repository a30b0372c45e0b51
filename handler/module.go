package handler

import "go.uber.org/fx"

func Module() fx.Option {
	return fx.Module("handler",
		fx.Provide(NewCommandHandler),
		fx.Provide(NewLegacyRoute),
		fx.Provide(NewCommandRoute),
		fx.Provide(NewHealthRoute),
	)
}
