// Package physics implements the two demo simulations:
//
//   - [Projectile]: single drag-affected body integrated with RK4 until
//     ground contact or the duration cap
//   - [TwoBody]: two circles under constant velocity, mirror-reflected off
//     a fixed box, with momentum-conserving elastic collision resolution
//
// Both satisfy [Simulation], the fixed-step contract the engine drives.
// One Step call advances exactly one dt; pacing against wall-clock time is
// the engine's job, not this package's.
package physics
