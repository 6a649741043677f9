package store

import (
	"context"
	"sort"
)

// Room is a conversation context: a named instruction layered on top of the
// global persona when generating replies.
type Room struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	RoomInstruction string `json:"roomInstruction"`
	CreatedAt       string `json:"createdAt"`
	UpdatedAt       string `json:"updatedAt"`
}

// DefaultRooms are seeded on first run, in this canonical order.
var DefaultRooms = []Room{
	{
		Name:            "リビング",
		RoomInstruction: "ここはリビング。リラックスした日常会話の場所。くつろいだ雰囲気で、何気ない話も大切にする。",
	},
	{
		Name:            "灯の書斎",
		RoomInstruction: "ここは灯の書斎。知的な会話や相談事に向いている場所。じっくり考えて、丁寧に言葉を選ぶ。",
	},
	{
		Name:            "雨音の間",
		RoomInstruction: "ここは雨音の間。静かで落ち着いた空間。感情を大切に、寄り添うような穏やかな対話を心がける。",
	},
}

// Rooms returns all rooms. Corrupt stored data degrades to an empty list.
func (s *Store) Rooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := s.loadCollection(ctx, KeyRooms, &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// SaveRooms rewrites the room collection in full.
func (s *Store) SaveRooms(ctx context.Context, rooms []Room) error {
	return s.saveCollection(ctx, KeyRooms, rooms)
}

// CreateRoom prepends a new room. An empty name defaults to the creation
// timestamp; a default room's name picks up its canonical instruction unless
// one is given.
func (s *Store) CreateRoom(ctx context.Context, name, instruction string) (Room, error) {
	now := Timestamp()
	if name == "" {
		name = FormatTimestamp(now)
	}
	if instruction == "" {
		for _, d := range DefaultRooms {
			if d.Name == name {
				instruction = d.RoomInstruction
				break
			}
		}
	}

	room := Room{
		ID:              GenerateID("room"),
		Name:            name,
		RoomInstruction: instruction,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	rooms, err := s.Rooms(ctx)
	if err != nil {
		return Room{}, err
	}
	rooms = append([]Room{room}, rooms...)
	if err := s.SaveRooms(ctx, rooms); err != nil {
		return Room{}, err
	}
	return room, nil
}

// UpdateRoom renames a room and/or replaces its instruction. An empty name
// keeps the current one; the instruction is always overwritten.
func (s *Store) UpdateRoom(ctx context.Context, id, name, instruction string) (Room, error) {
	rooms, err := s.Rooms(ctx)
	if err != nil {
		return Room{}, err
	}
	for i := range rooms {
		if rooms[i].ID != id {
			continue
		}
		if name != "" {
			rooms[i].Name = name
		}
		rooms[i].RoomInstruction = instruction
		rooms[i].UpdatedAt = Timestamp()
		if err := s.SaveRooms(ctx, rooms); err != nil {
			return Room{}, err
		}
		return rooms[i], nil
	}
	return Room{}, ErrNotFound
}

// DeleteRoom removes a room. The last remaining room cannot be deleted.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	rooms, err := s.Rooms(ctx)
	if err != nil {
		return err
	}
	if len(rooms) < 2 {
		return ErrLastRoom
	}

	kept := rooms[:0]
	for _, r := range rooms {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(rooms) {
		return ErrNotFound
	}
	return s.SaveRooms(ctx, kept)
}

// EnsureDefaultRooms seeds the three default rooms when none exist and
// re-sorts the list so the defaults come first in canonical order, custom
// rooms after. Returns the resulting list.
func (s *Store) EnsureDefaultRooms(ctx context.Context) ([]Room, error) {
	rooms, err := s.Rooms(ctx)
	if err != nil {
		return nil, err
	}

	if len(rooms) == 0 {
		for _, d := range DefaultRooms {
			if _, err := s.CreateRoom(ctx, d.Name, d.RoomInstruction); err != nil {
				return nil, err
			}
		}
		if rooms, err = s.Rooms(ctx); err != nil {
			return nil, err
		}
	}

	sortRoomsCanonical(rooms)
	if err := s.SaveRooms(ctx, rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// sortRoomsCanonical puts the default rooms first in fixed order. Custom
// rooms keep their relative order at the end.
func sortRoomsCanonical(rooms []Room) {
	rank := func(r Room) int {
		for i, d := range DefaultRooms {
			if d.Name == r.Name {
				return i
			}
		}
		return len(DefaultRooms)
	}
	sort.SliceStable(rooms, func(i, j int) bool {
		return rank(rooms[i]) < rank(rooms[j])
	})
}

// ResolveRoom looks a room up by ID, falling back to the first room when the
// reference is dangling. Room references are weak: the referenced room may
// have been deleted independently.
func ResolveRoom(rooms []Room, id string) (Room, bool) {
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	if len(rooms) > 0 {
		return rooms[0], true
	}
	return Room{}, false
}
