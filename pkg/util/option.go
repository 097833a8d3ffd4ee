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

import "fmt"

// Option is a value which may or may not be present, such as the name of the
// rule applied by a mutation step which may not have happened.
type Option[T any] struct {
	present bool
	value   T
}

// Some constructs an option holding a given value.
func Some[T any](val T) Option[T] {
	return Option[T]{true, val}
}

// None constructs an empty option.
func None[T any]() Option[T] {
	return Option[T]{}
}

// HasValue checks whether this option holds a value.
func (o Option[T]) HasValue() bool {
	return o.present
}

// IsEmpty checks whether this option holds no value.
func (o Option[T]) IsEmpty() bool {
	return !o.present
}

// Unwrap returns the value held, or panics if there is none.
func (o Option[T]) Unwrap() T {
	if !o.present {
		panic("unwrap of empty option")
	}
	//
	return o.value
}

// UnwrapOr returns the value held, or a given default if there is none.
func (o Option[T]) UnwrapOr(otherwise T) T {
	if o.present {
		return o.value
	}
	//
	return otherwise
}

func (o Option[T]) String() string {
	if o.present {
		return fmt.Sprintf("Some(%v)", o.value)
	}
	//
	return "None"
}
