// Package field models gridded physical fields on a two-dimensional
// plane: immutable grids, datasets of named variables with coordinate
// grids, periodic shifts and index-based window selection.
//
// What:
//
//   - Grid: immutable rectangular 2D float64 array; NaN marks missing data.
//   - Dataset: named grids on one Plane with coordinate grids per axis,
//     validated once at construction and read-only thereafter.
//   - CyclicShift: periodic shift of a grid on both axes.
//   - Dataset.Select: restriction to explicit row/column index sequences,
//     the primitive bootstrap windows are built on.
//   - Roles: explicit manifest mapping variable names to kernel roles
//     (primary/secondary velocity, scalars, advecting pair).
//
// Why:
//
//   - Structure-function kernels need random access to several fields
//     plus the physical coordinates of both axes, under one shape.
//   - Bootstrap resampling needs cheap, safe window restriction that can
//     run in parallel over a shared read-only dataset.
//
// Errors:
//
//   - ErrEmptyGrid, ErrShapeMismatch: malformed grid construction.
//   - ErrUnsupportedPlane: plane outside (y,x), (z,x), (z,y).
//   - ErrNoVariables, ErrMissingVariable, ErrMissingCoordinate,
//     ErrGridShape: malformed or inconsistent datasets.
//   - ErrIndexRange, ErrEmptySelection: invalid window selections.
package field
