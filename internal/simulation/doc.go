// Package simulation computes a 3D force-directed layout for a neural graph.
//
// A Simulation owns arena-style node and link storage and relaxes node
// positions under five forces: link springs, many-body charge (Barnes-Hut),
// a weak centering pull, collision for large graphs, and an optional radial
// constraint around a center node. Each frame cools the system by one step
// of the alpha schedule; the loop stops once alpha drops below AlphaMin.
//
// Frames are delivered by a driven.FrameScheduler. Callbacks run outside the
// simulation's lock, so they may call back into the Simulation.
package simulation
