// Copyright Consensys Software Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0
package util

import "testing"

func TestOption_0(t *testing.T) {
	o := Some("ORTOIMP")
	//
	if !o.HasValue() || o.IsEmpty() || o.Unwrap() != "ORTOIMP" || o.UnwrapOr("") != "ORTOIMP" {
		t.Errorf("unexpected option %s", o)
	}
}

func TestOption_1(t *testing.T) {
	o := None[int]()
	//
	if o.HasValue() || !o.IsEmpty() || o.UnwrapOr(3) != 3 || o.String() != "None" {
		t.Errorf("unexpected option %s", o)
	}
	//
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	//
	o.Unwrap()
}
