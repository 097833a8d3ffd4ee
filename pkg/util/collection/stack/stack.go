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
package stack

import "fmt"

// Stack is a LIFO stack, such as the scopes of bound variables in a term or a
// worklist of subterms.  The zero value is an empty stack.
type Stack[T any] struct {
	items []T
}

// NewStack returns an empty stack.
func NewStack[T any]() *Stack[T] {
	return &Stack[T]{}
}

// IsEmpty checks whether the stack has no items.
func (p *Stack[T]) IsEmpty() bool {
	return len(p.items) == 0
}

// Len returns the number of items on the stack.
func (p *Stack[T]) Len() uint {
	return uint(len(p.items))
}

// Peek returns the item at a given depth, where the top of the stack has depth
// zero.
func (p *Stack[T]) Peek(depth uint) T {
	return p.items[p.index(depth)]
}

// Push zero or more items onto the stack, such that the last is on top.
func (p *Stack[T]) Push(items ...T) {
	p.items = append(p.items, items...)
}

// PushReversed pushes zero or more items onto the stack, such that the first
// is on top.
func (p *Stack[T]) PushReversed(items []T) {
	for i := len(items) - 1; i >= 0; i-- {
		p.items = append(p.items, items[i])
	}
}

// Pop the top item off the stack.
func (p *Stack[T]) Pop() T {
	top := p.Peek(0)
	p.items = p.items[:len(p.items)-1]
	//
	return top
}

func (p *Stack[T]) index(depth uint) int {
	if depth >= uint(len(p.items)) {
		panic(fmt.Sprintf("stack depth %d out-of-bounds (length %d)", depth, len(p.items)))
	}
	//
	return len(p.items) - 1 - int(depth)
}
