package extension

import "go.uber.org/fx"

// Module exposes the extension processor via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
