package scenario

// TextureTable answers texture size and switch pair lookups from the
// scenario's texture list.
type TextureTable struct {
	byID     map[int]Texture
	switches map[int]int
}

// NewTextureTable indexes textures by id. A switch pair only has to be
// declared on one of its halves.
func NewTextureTable(textures []Texture) *TextureTable {
	t := &TextureTable{
		byID:     make(map[int]Texture, len(textures)),
		switches: make(map[int]int),
	}
	for _, tex := range textures {
		t.byID[tex.ID] = tex
	}
	for _, tex := range textures {
		if tex.Switch == 0 {
			continue
		}
		t.switches[tex.ID] = tex.Switch
		if _, ok := t.switches[tex.Switch]; !ok {
			t.switches[tex.Switch] = tex.ID
		}
	}
	return t
}

func (t *TextureTable) GetTextureHeight(handle int) (int, int, bool) {
	tex, ok := t.byID[handle]
	if !ok {
		return 0, 0, false
	}
	return tex.Width, tex.Height, true
}

func (t *TextureTable) SwitchPair(handle int) (int, bool) {
	pair, ok := t.switches[handle]
	return pair, ok
}

// Name returns the texture name, or "" for unknown handles.
func (t *TextureTable) Name(handle int) string { return t.byID[handle].Name }
