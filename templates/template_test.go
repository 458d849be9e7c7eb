package templates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func sampleTemplate() *Template {
	return &Template{
		ID:              "aBcDeF1",
		CreatedAt:       time.Unix(1700000000, 0),
		OriginalGuildID: "100",
		Owner:           "42",
		Uses:            2,
		roles: []*Role{
			{Name: "Mods", Color: 0xff0000, Hoist: true, Permissions: 8192, Mentionable: true, Position: 2},
			{Name: "Members", Color: 0x00ff00, Position: 1},
		},
		nodes: []node{
			&Category{
				Name:     "Team",
				Position: 0,
				Overwrites: OverwriteSet{
					"Mods": {"read_messages": OverwriteAllow},
				},
				children: []*Channel{
					{
						Name:       "staff-chat",
						Topic:      "internal",
						Kind:       ChannelText,
						Position:   1,
						Overwrites: OverwriteSet{},
						LastMessages: []*Message{
							{Author: "mira#0001", AuthorAvatarURL: "https://cdn.example/a.png", Content: "hello"},
						},
					},
					{Name: "staff-voice", Kind: ChannelVoice, Position: 2, Overwrites: OverwriteSet{}},
				},
			},
			&Channel{
				Name:       "general",
				Topic:      "chat",
				Kind:       ChannelText,
				Position:   3,
				Overwrites: OverwriteSet{"Members": {"send_messages": OverwriteDeny}},
			},
		},
	}
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	original := sampleTemplate()

	doc, err := original.Serialize()
	if err != nil {
		t.Fatal(err)
	}

	parsed, err := Deserialize(doc)
	if err != nil {
		t.Fatal(err)
	}

	if parsed.ID != original.ID {
		t.Errorf("ID = %q, want %q", parsed.ID, original.ID)
	}
	if parsed.OriginalGuildID != original.OriginalGuildID {
		t.Errorf("OriginalGuildID = %q, want %q", parsed.OriginalGuildID, original.OriginalGuildID)
	}
	if parsed.Owner != original.Owner {
		t.Errorf("Owner = %q, want %q", parsed.Owner, original.Owner)
	}
	if parsed.Uses != original.Uses {
		t.Errorf("Uses = %d, want %d", parsed.Uses, original.Uses)
	}
	if !parsed.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", parsed.CreatedAt, original.CreatedAt)
	}

	roles := parsed.Roles()
	if len(roles) != 2 {
		t.Fatalf("got %d roles, want 2", len(roles))
	}
	if roles[0].Name != "Members" || roles[1].Name != "Mods" {
		t.Errorf("roles = [%s %s], want position ascending [Members Mods]", roles[0].Name, roles[1].Name)
	}
	if roles[1].Color != 0xff0000 || !roles[1].Hoist || roles[1].Permissions != 8192 || !roles[1].Mentionable {
		t.Errorf("Mods = %+v, attributes did not survive the round trip", roles[1])
	}

	categories, standalone := parsed.Channels()
	if len(categories) != 1 || len(standalone) != 1 {
		t.Fatalf("got %d categories and %d standalone channels, want 1 and 1", len(categories), len(standalone))
	}

	category := categories[0]
	if category.Name != "Team" {
		t.Errorf("category name = %q, want Team", category.Name)
	}
	if category.Overwrites["Mods"]["read_messages"] != OverwriteAllow {
		t.Error("category overwrite did not survive the round trip")
	}

	children := category.Children()
	if len(children) != 2 {
		t.Fatalf("got %d children, want 2", len(children))
	}
	if children[0].Name != "staff-chat" || children[0].Kind != ChannelText || children[0].Topic != "internal" {
		t.Errorf("first child = %+v, want text channel staff-chat", children[0])
	}
	if len(children[0].LastMessages) != 1 || children[0].LastMessages[0].Content != "hello" {
		t.Error("trailing message did not survive the round trip")
	}
	if children[1].Kind != ChannelVoice || len(children[1].LastMessages) != 0 {
		t.Errorf("second child = %+v, want voice channel without messages", children[1])
	}

	if standalone[0].Name != "general" || standalone[0].Topic != "chat" {
		t.Errorf("standalone channel = %+v, want general", standalone[0])
	}
	if standalone[0].Overwrites["Members"]["send_messages"] != OverwriteDeny {
		t.Error("standalone channel overwrite did not survive the round trip")
	}
}

func TestDeserializeMissingRequiredKey(t *testing.T) {
	doc := []byte(`{"id": "abc", "channels": [], "original_guild_id": "100"}`)

	_, err := Deserialize(doc)
	if errors.Cause(err) != ErrInvalidTemplateDocument {
		t.Fatalf("err = %v, want ErrInvalidTemplateDocument for a document without roles", err)
	}
}

func TestDeserializeMissingNestedKey(t *testing.T) {
	doc := []byte(`{
		"id": "abc",
		"original_guild_id": "100",
		"roles": [],
		"channels": [{"name": "general", "type": "text", "permissions": {}, "position": 0}]
	}`)

	_, err := Deserialize(doc)
	if errors.Cause(err) != ErrInvalidTemplateDocument {
		t.Fatalf("err = %v, want ErrInvalidTemplateDocument for a channel without topic", err)
	}
}

func TestDeserializeUnknownChannelType(t *testing.T) {
	doc := []byte(`{
		"id": "abc",
		"original_guild_id": "100",
		"roles": [],
		"channels": [{"name": "stage", "topic": "", "type": "stage", "permissions": {}, "position": 0}]
	}`)

	_, err := Deserialize(doc)
	if errors.Cause(err) != ErrInvalidTemplateDocument {
		t.Fatalf("err = %v, want ErrInvalidTemplateDocument for an unknown channel type", err)
	}
}

func TestDeserializeNumericGuildID(t *testing.T) {
	doc := []byte(`{"id": "abc", "original_guild_id": 1234567890, "roles": [], "channels": []}`)

	template, err := Deserialize(doc)
	if err != nil {
		t.Fatal(err)
	}

	if template.OriginalGuildID != "1234567890" {
		t.Errorf("OriginalGuildID = %q, numeric ids should parse as strings", template.OriginalGuildID)
	}
}

func TestDeserializeGeneratesIDWhenEmpty(t *testing.T) {
	doc := []byte(`{"id": "", "original_guild_id": "100", "roles": [], "channels": []}`)

	template, err := Deserialize(doc)
	if err != nil {
		t.Fatal(err)
	}

	if template.ID == "" {
		t.Error("expected a generated id for a document with an empty one")
	}
}

// documents written by older exporters carry no type discriminant, categories
// are recognized by the presence of a children list
func TestDeserializeChildrenFallback(t *testing.T) {
	doc := []byte(`{
		"id": "abc",
		"original_guild_id": "100",
		"roles": [],
		"channels": [
			{"name": "Team", "permissions": {}, "children": [
				{"name": "general", "topic": "", "type": "text", "permissions": {}, "position": 0}
			]},
			{"name": "lobby", "topic": "", "type": "text", "permissions": {}, "position": 1}
		]
	}`)

	template, err := Deserialize(doc)
	if err != nil {
		t.Fatal(err)
	}

	categories, standalone := template.Channels()
	if len(categories) != 1 || len(standalone) != 1 {
		t.Fatalf("got %d categories and %d standalone channels, want 1 and 1", len(categories), len(standalone))
	}
	if len(categories[0].Children()) != 1 {
		t.Errorf("got %d children, want 1", len(categories[0].Children()))
	}
}

func TestSerializeWritesTypeDiscriminant(t *testing.T) {
	doc, err := sampleTemplate().Serialize()
	if err != nil {
		t.Fatal(err)
	}

	var parsed struct {
		Channels []map[string]json.RawMessage `json:"channels"`
	}
	if err := json.Unmarshal(doc, &parsed); err != nil {
		t.Fatal(err)
	}

	if len(parsed.Channels) != 2 {
		t.Fatalf("got %d channel entries, want 2", len(parsed.Channels))
	}
	if string(parsed.Channels[0]["type"]) != `"category"` {
		t.Errorf("category type = %s, want \"category\"", parsed.Channels[0]["type"])
	}
	if string(parsed.Channels[1]["type"]) != `"text"` {
		t.Errorf("channel type = %s, want \"text\"", parsed.Channels[1]["type"])
	}
}

func TestRolesAndChannelsSortedAscending(t *testing.T) {
	template := &Template{
		roles: []*Role{
			{Name: "c", Position: 3},
			{Name: "a", Position: 1},
			{Name: "b", Position: 2},
		},
		nodes: []node{
			&Channel{Name: "second", Kind: ChannelText, Position: 5},
			&Channel{Name: "first", Kind: ChannelText, Position: 4},
			&Category{Name: "late", Position: 9},
			&Category{Name: "early", Position: 8},
		},
	}

	roles := template.Roles()
	for i, want := range []string{"a", "b", "c"} {
		if roles[i].Name != want {
			t.Errorf("roles[%d] = %q, want %q", i, roles[i].Name, want)
		}
	}

	categories, standalone := template.Channels()
	if categories[0].Name != "early" || categories[1].Name != "late" {
		t.Errorf("categories = [%s %s], want position ascending", categories[0].Name, categories[1].Name)
	}
	if standalone[0].Name != "first" || standalone[1].Name != "second" {
		t.Errorf("standalone = [%s %s], want position ascending", standalone[0].Name, standalone[1].Name)
	}
}

func TestMessageWebhookParamsAppendsAttachments(t *testing.T) {
	message := &Message{
		Author:      "mira#0001",
		Content:     "look at this",
		Attachments: []string{"https://cdn.example/cat.png"},
	}

	params := message.WebhookParams()
	if params.Content != "look at this\nhttps://cdn.example/cat.png" {
		t.Errorf("content = %q, attachment url should be appended", params.Content)
	}
	if params.Username != "mira#0001" {
		t.Errorf("username = %q, want the stored author", params.Username)
	}
}
