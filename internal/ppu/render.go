package ppu

// renderLine composes background and sprites for one visible scanline using the
// scroll position held in v at the end of the line.
func (p *PPU) renderLine(y int) {
	row := p.Screen[y*Width : (y+1)*Width]
	backdrop := p.readPalette(0x3F00)

	if !p.renderingEnabled() {
		for i := range row {
			row[i] = backdrop
		}
		return
	}

	p.renderBackground()
	for x := 0; x < Width; x++ {
		px := p.bgLine[x]
		if px&0x03 == 0 {
			row[x] = backdrop
		} else {
			row[x] = p.readPalette(0x3F00 | uint16(px))
		}
	}
	p.renderSprites(y, row)
}

// renderBackground fills bgLine with 4-bit background palette entries (palette<<2 | pixel).
func (p *PPU) renderBackground() {
	for i := range p.bgLine {
		p.bgLine[i] = 0
	}
	if p.mask&0x08 == 0 {
		return
	}
	v := p.v
	fineY := (v >> 12) & 0x07
	table := uint16(p.ctrl&0x10) << 8
	for tile := 0; tile < 33; tile++ {
		nt := p.read(0x2000 | v&0x0FFF)
		at := p.read(0x23C0 | v&0x0C00 | (v>>4)&0x38 | (v>>2)&0x07)
		shift := ((v >> 4) & 0x04) | (v & 0x02)
		pal := (at >> shift) & 0x03
		addr := table + uint16(nt)*16 + fineY
		lo := p.read(addr)
		hi := p.read(addr + 8)
		for bit := 0; bit < 8; bit++ {
			sx := tile*8 + bit - int(p.x)
			if sx < 0 || sx >= Width {
				continue
			}
			if sx < 8 && p.mask&0x02 == 0 {
				continue
			}
			px := (lo>>(7-bit))&1 | ((hi>>(7-bit))&1)<<1
			p.bgLine[sx] = pal<<2 | px
		}
		// coarse X with nametable wrap
		if v&0x001F == 31 {
			v &^= 0x001F
			v ^= 0x0400
		} else {
			v++
		}
	}
}

// renderSprites evaluates OAM for line y and draws up to eight sprites over row.
func (p *PPU) renderSprites(y int, row []byte) {
	if p.mask&0x10 == 0 {
		return
	}
	height := 8
	if p.ctrl&0x20 != 0 {
		height = 16
	}

	var found [8]int
	n := 0
	for i := 0; i < 64; i++ {
		top := int(p.oam[i*4]) + 1
		if y < top || y >= top+height {
			continue
		}
		if n == 8 {
			p.status |= 0x20
			break
		}
		found[n] = i
		n++
	}

	// Draw back to front so lower OAM indices win.
	drawn := [Width]bool{}
	for k := 0; k < n; k++ {
		i := found[k]
		top := int(p.oam[i*4]) + 1
		tile := p.oam[i*4+1]
		attr := p.oam[i*4+2]
		sx := int(p.oam[i*4+3])
		r := y - top
		if attr&0x80 != 0 {
			r = height - 1 - r
		}
		var addr uint16
		if height == 16 {
			bank := uint16(tile&0x01) * 0x1000
			t := uint16(tile &^ 0x01)
			if r >= 8 {
				t++
				r -= 8
			}
			addr = bank + t*16 + uint16(r)
		} else {
			addr = uint16(p.ctrl&0x08)<<9 + uint16(tile)*16 + uint16(r)
		}
		lo := p.read(addr)
		hi := p.read(addr + 8)
		for bit := 0; bit < 8; bit++ {
			x := sx + bit
			if x >= Width {
				break
			}
			if x < 8 && p.mask&0x04 == 0 {
				continue
			}
			b := 7 - bit
			if attr&0x40 != 0 {
				b = bit
			}
			px := (lo>>b)&1 | ((hi>>b)&1)<<1
			if px == 0 || drawn[x] {
				continue
			}
			drawn[x] = true
			bgOpaque := p.bgLine[x]&0x03 != 0
			if i == 0 && bgOpaque && x != 255 {
				p.status |= 0x40
			}
			if attr&0x20 != 0 && bgOpaque {
				continue
			}
			row[x] = p.readPalette(0x3F10 | uint16(attr&0x03)<<2 | uint16(px))
		}
	}
}
