package attendance

import "go.uber.org/fx"

// Module exposes the attendance ledger service via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
