// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"

	"github.com/poiesic/dashboard/core"
)

func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return id, nil
}

func MarshalUser(user *core.User) []byte {
	buf := make([]byte, core.UserMUS.Size(*user))
	core.UserMUS.Marshal(*user, buf)
	return buf
}

func UnmarshalUser(data []byte) (*core.User, error) {
	user, _, err := core.UserMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: user: %w", ErrSerializationFailed, err)
	}
	return &user, nil
}

func MarshalSession(session *core.Session) []byte {
	buf := make([]byte, core.SessionMUS.Size(*session))
	core.SessionMUS.Marshal(*session, buf)
	return buf
}

func UnmarshalSession(data []byte) (*core.Session, error) {
	session, _, err := core.SessionMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: session: %w", ErrSerializationFailed, err)
	}
	return &session, nil
}
