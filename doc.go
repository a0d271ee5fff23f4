// Copyright 2025 The sh1107sim Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sh1107sim is a container for an SH1107 display-controller
// simulator and its companion packages.
//
// The simulator proper lives in the sh1107 package. It speaks the same
// byte protocol as the physical chip over periph.io bus interfaces, so
// any driver written against periph.io/x/conn can run unmodified against
// the simulated panel.
package sh1107sim
