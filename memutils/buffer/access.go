package buffer

// GetPos claims size bytes at the end of the used region and returns their position, or -1 if
// the buffer could not grow to fit them
func (b *Buffer) GetPos(size int) int {
	if size < 0 || !b.Resize(b.used+size) {
		return -1
	}

	pos := b.used
	b.used += size
	return pos
}

// GetRef claims size bytes at the end of the used region and returns them, or nil if the buffer
// could not grow to fit them. The slice is invalidated by the next growth.
func (b *Buffer) GetRef(size int) []byte {
	pos := b.GetPos(size)
	if pos < 0 {
		return nil
	}
	return b.data[pos : pos+size : pos+size]
}

// Store appends data to the used region and returns its position, or -1 on failure
func (b *Buffer) Store(data []byte) int {
	pos := b.GetPos(len(data))
	if pos < 0 {
		return -1
	}

	copy(b.data[pos:], data)
	return pos
}

// Set overwrites the bytes at pos with data. It returns false if that would write past the buffer's
// capacity. The used size is unchanged.
func (b *Buffer) Set(pos int, data []byte) bool {
	if pos < 0 || pos+len(data) > len(b.data) {
		return false
	}

	copy(b.data[pos:], data)
	return true
}

// Ref returns size bytes at pos, or nil if that range is outside the buffer's capacity
func (b *Buffer) Ref(pos, size int) []byte {
	if pos < 0 || size < 0 || pos+size > len(b.data) {
		return nil
	}
	return b.data[pos : pos+size : pos+size]
}

// Put releases size bytes from the end of the used region
func (b *Buffer) Put(size int) {
	b.used -= min(max(size, 0), b.used)
}

// Insert opens a gap at pos, shifting everything after it toward the end, and copies data into the
// gap. It returns false if pos is past the used region or the buffer could not grow.
func (b *Buffer) Insert(pos int, data []byte) bool {
	if pos < 0 || pos > b.used {
		return false
	}

	used := b.used
	if !b.Resize(used + len(data)) {
		return false
	}

	copy(b.data[pos+len(data):], b.data[pos:used])
	copy(b.data[pos:], data)
	b.used = used + len(data)
	return true
}

// Remove deletes size bytes at pos, shifting everything after them toward the front. Ranges that run
// past the used region are cut short.
func (b *Buffer) Remove(pos, size int) {
	if pos < 0 || size <= 0 || pos >= b.used {
		return
	}

	end := min(pos+size, b.used)
	copy(b.data[pos:], b.data[end:b.used])
	b.used -= end - pos
}

// Terminate zeroes size bytes just past the used region, without counting them as used. It returns
// false, writing nothing, if they do not fit in the current capacity.
func (b *Buffer) Terminate(size int) bool {
	if size < 0 || b.used+size > len(b.data) {
		return false
	}

	clear(b.data[b.used : b.used+size])
	return true
}

// FindWith treats the used region as records of stride bytes and returns the index of the first
// record that match accepts, or -1
func (b *Buffer) FindWith(stride int, match func(record []byte) bool) int {
	if stride <= 0 {
		return -1
	}

	for index, pos := 0, 0; pos+stride <= b.used; index, pos = index+1, pos+stride {
		if match(b.data[pos : pos+stride : pos+stride]) {
			return index
		}
	}

	return -1
}

// IsLast returns true if mem is the most recently claimed region at the end of the used region
func (b *Buffer) IsLast(mem []byte) bool {
	if len(mem) == 0 || len(mem) > b.used {
		return false
	}
	return &b.data[b.used-len(mem)] == &mem[0]
}

// SetUsed moves the end of the used region to used, which must be within the buffer's capacity
func (b *Buffer) SetUsed(used int) bool {
	if used < 0 || used > len(b.data) {
		return false
	}

	b.used = used
	return true
}
