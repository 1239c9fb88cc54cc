/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelFiltering(t *testing.T) {
	old := level
	defer SetLevel(old)

	var buf bytes.Buffer
	l := New("test", &buf)

	SetLevel(LevelWarn)
	l.Infof("hidden %d", 1)
	assert.Equal(t, 0, buf.Len())

	l.Warnf("shown %d", 2)
	assert.True(t, strings.Contains(buf.String(), "shown 2"))
	assert.True(t, strings.Contains(buf.String(), "Warn"))
}

func TestNoPrintSilences(t *testing.T) {
	old := level
	defer SetLevel(old)

	var buf bytes.Buffer
	l := New("silent", &buf)

	SetLevel(LevelNoPrint)
	l.Errorf("nope")
	assert.Equal(t, 0, buf.Len())
}

func TestLocationInPrefix(t *testing.T) {
	old := level
	defer SetLevel(old)

	var buf bytes.Buffer
	l := New("loc", &buf)

	SetLevel(LevelTrace)
	l.Tracef("where")
	assert.True(t, strings.Contains(buf.String(), "logging_test.go"))
}
