// Package scene defines the presentation collaborators the game core talks to.
//
// The core never touches geometry. It instantiates cloned templates and then
// only moves, fades, attaches and detaches the resulting handles:
//
//	lib, err := scene.Preload(ctx, loader, scene.DefaultManifest(3, 2, 4))
//	if err != nil {
//		log.Fatal(err) // asset failures are fatal at startup
//	}
//
//	h, err := sc.Instantiate(lib, "tree-0")
//	sc.SetTransform(h, scene.Transform{Position: scene.Vec3{X: 4, Z: 7}, Scale: scene.One})
//	sc.Attach(h)
//
// Templates carry a declarative material slot table (trunk, canopy, petal …)
// built once at load time, so frontends restyle per variant by slot name
// instead of walking a node tree.
//
// Pose maps the player's kinematic animation phase to limb angles, keeping
// the player state machine free of any visual dependency.
package scene
