package studysession

// Cursor - позиция в отфильтрованной последовательности.
// Индекс всегда в [0, length-1], для пустой последовательности - 0.
type Cursor struct {
	index  int
	length int
}

// NewCursor создает курсор в начале последовательности длины length
func NewCursor(length int) *Cursor {
	c := &Cursor{}
	c.Reset(length)
	return c
}

// Index возвращает текущую позицию
func (c *Cursor) Index() int { return c.index }

// Len возвращает длину последовательности
func (c *Cursor) Len() int { return c.length }

// Next сдвигает курсор вперёд. На последнем элементе ничего не делает.
func (c *Cursor) Next() bool {
	if c.index+1 >= c.length {
		return false
	}
	c.index++
	return true
}

// Previous сдвигает курсор назад. На нулевом элементе ничего не делает.
func (c *Cursor) Previous() bool {
	if c.index == 0 {
		return false
	}
	c.index--
	return true
}

// JumpTo переводит курсор на позицию n. Позиция вне диапазона игнорируется.
func (c *Cursor) JumpTo(n int) bool {
	if n < 0 || n >= c.length {
		return false
	}
	c.index = n
	return true
}

// Reset ставит курсор на 0 для новой последовательности
func (c *Cursor) Reset(length int) {
	if length < 0 {
		length = 0
	}
	c.length = length
	c.index = 0
}

// HasNext сообщает, есть ли следующий элемент
func (c *Cursor) HasNext() bool { return c.index+1 < c.length }

// HasPrevious сообщает, есть ли предыдущий элемент
func (c *Cursor) HasPrevious() bool { return c.index > 0 }
