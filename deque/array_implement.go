package deque

// 数组大小基数
const base = 8

// ArrDeque keeps its elements in a ring over a single array, so traversal
// walks contiguous memory.
type ArrDeque[T any] struct {
	arr []T
	// 队首下标
	start int
	// 元素个数
	size int
}

var _ Deque[int] = (*ArrDeque[int])(nil)

// 工厂方法, 容量向上取整到 base 的倍数
func NewArrDeque[T any](capacity int) *ArrDeque[T] {
	if capacity < 1 {
		capacity = 1
	}
	if remainder := capacity % base; remainder != 0 {
		capacity = capacity - remainder + base
	}
	return &ArrDeque[T]{arr: make([]T, capacity)}
}

func (ad *ArrDeque[T]) Size() int { return ad.size }

func (ad *ArrDeque[T]) Cap() int { return len(ad.arr) }

func (ad *ArrDeque[T]) index(i int) int {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return (ad.start + i) % len(ad.arr)
}

func (ad *ArrDeque[T]) Get(i int) T { return ad.arr[ad.index(i)] }

func (ad *ArrDeque[T]) Set(i int, v T) { ad.arr[ad.index(i)] = v }

func (ad *ArrDeque[T]) Traverse(f func(i int, v T)) {
	for i := 0; i < ad.size; i++ {
		f(i, ad.arr[(ad.start+i)%len(ad.arr)])
	}
}

// Slice copies the elements out, front first.
func (ad *ArrDeque[T]) Slice() []T {
	out := make([]T, 0, ad.size)
	ad.Traverse(func(_ int, v T) { out = append(out, v) })
	return out
}

// AddLast reports false when the deque is full.
func (ad *ArrDeque[T]) AddLast(v T) bool {
	if ad.IsFull() {
		return false
	}
	ad.arr[(ad.start+ad.size)%len(ad.arr)] = v
	ad.size++
	return true
}

func (ad *ArrDeque[T]) RemoveLast() (T, bool) {
	var zero T
	if ad.IsEmpty() {
		return zero, false
	}
	i := (ad.start + ad.size - 1) % len(ad.arr)
	v := ad.arr[i]
	ad.arr[i] = zero
	ad.size--
	return v, true
}

// AddFirst reports false when the deque is full.
func (ad *ArrDeque[T]) AddFirst(v T) bool {
	if ad.IsFull() {
		return false
	}
	ad.start = (ad.start - 1 + len(ad.arr)) % len(ad.arr)
	ad.arr[ad.start] = v
	ad.size++
	return true
}

func (ad *ArrDeque[T]) RemoveFirst() (T, bool) {
	var zero T
	if ad.IsEmpty() {
		return zero, false
	}
	v := ad.arr[ad.start]
	ad.arr[ad.start] = zero
	ad.start = (ad.start + 1) % len(ad.arr)
	ad.size--
	return v, true
}

// Push appends v, dropping the front element first when full.
func (ad *ArrDeque[T]) Push(v T) {
	if ad.IsFull() {
		ad.RemoveFirst()
	}
	ad.AddLast(v)
}

func (ad *ArrDeque[T]) IsFull() bool { return ad.size == len(ad.arr) }

func (ad *ArrDeque[T]) IsEmpty() bool { return ad.size == 0 }
