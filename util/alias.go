package util

type (
	TErrCode = uint16
)

type (
	Fn               func()
	ToInt64          func() int64
	ToErr            func() *Err
	FnBool           func(bool)
	FnInt            func(int)
	FnAny            func(any)
	FnAnySlc         func([]any)
	FnErr            func(*Err)
	FnStr            func(string)
	FnStrAny         func(string, any)
	StrToBytesErr    func(string) ([]byte, *Err)
	StrToStr2Err     func(string) (string, string, *Err)
	BytesToAnyErr    func([]byte) (any, *Err)
	AnyBoolToAnyBool func(any, bool) (any, bool)
)

func Default[T any]() T {
	var v T
	return v
}

func SplitSlc1[T any](slc []any) T {
	return slc[0].(T)
}

func SplitSlc2[T1, T2 any](slc []any) (T1, T2) {
	return slc[0].(T1), slc[1].(T2)
}

func SplitSlc3[T1, T2, T3 any](slc []any) (T1, T2, T3) {
	return slc[0].(T1), slc[1].(T2), slc[2].(T3)
}
