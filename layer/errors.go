// Copyright (c) 2026, The OmegaWTK Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layer

import "errors"

// ErrInvalidParent is returned when a reparent operation targets a
// limb or layer handle that belongs to a different LayerTree.
var ErrInvalidParent = errors.New("layer: invalid parent (cross-tree reparent)")

// ErrInvalidGeometry is returned when a resize targets non-finite or
// non-positive dimensions.
var ErrInvalidGeometry = errors.New("layer: invalid geometry")

// ErrUnknownHandle is returned when a handle does not resolve to a
// live node in the tree (already detached, or from another tree).
var ErrUnknownHandle = errors.New("layer: unknown handle")
