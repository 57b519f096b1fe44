package snapshot

import "go.uber.org/fx"

// Module exposes the snapshot service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
