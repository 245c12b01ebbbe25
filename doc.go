// Package settle implements a flash-accounting settlement engine for a
// multi-asset exchange. Pools, claim balances and external reserves are
// coordinated through short-lived sessions: a session opens, performs any
// number of swaps, liquidity changes, donations and balance operations, and
// may only commit once every per-(caller, asset) delta has returned to zero.
// Anything else rolls the session back in full.
//
// Basic usage:
//
//	engine := settle.New(
//		settle.WithLogger(logger),
//		settle.WithStore(memory.New()),
//	)
//	if err := engine.Start(ctx); err != nil {
//		return err
//	}
//	defer engine.Stop(ctx)
//
//	key := pool.Key{Asset0: "usdc", Asset1: "weth", Fee: pool.Fee030}
//	poolID, err := engine.InitializePool(ctx, operator, key, startingPrice)
//
//	_, err = engine.RunSession(ctx, trader, nil, settle.ExecutorFunc(
//		func(ctx context.Context, _ []byte) ([]byte, error) {
//			delta, err := engine.Swap(ctx, key, pool.SwapParams{
//				ZeroForOne:      true,
//				AmountSpecified: big.NewInt(1_000_000),
//			})
//			if err != nil {
//				return nil, err
//			}
//			// Pay what is owed, withdraw what is earned.
//			if err := engine.Sync(key.Asset0); err != nil {
//				return nil, err
//			}
//			engine.Gateway().Deposit(key.Asset0, new(big.Int).Neg(delta.Amount0))
//			// ... Settle and Take until all deltas are zero.
//			return nil, nil
//		},
//	))
//
// Pools may carry extensions registered through RegisterExtension. An
// extension's declared permissions must match the hook interfaces its type
// implements; capabilities are derived once at registration and cached, so
// dispatch is cheap. Delta-returning hooks let extensions take part in
// settlement itself, within the bounds the engine enforces.
package settle
