// Package deque is a fixed-capacity double-ended queue over one backing
// array. It is used for bounded histories where only the newest entries
// matter, e.g. the last lines a solver engine printed.
package deque

type Deque[T any] interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的数值, 0 为队首
	Get(i int) T

	// 设定队列中对应下标的数值
	Set(i int, v T)

	// 正向遍历
	Traverse(f func(i int, v T))

	// 在队列结尾增加一个元素
	AddLast(v T) bool

	// 在队列结尾删除一个元素
	RemoveLast() (T, bool)

	// 在队列头部增加一个元素
	AddFirst(v T) bool

	// 在队列头部删除一个元素
	RemoveFirst() (T, bool)

	IsFull() bool

	IsEmpty() bool
}
