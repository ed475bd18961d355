package util

// type tags prefixed to each encoded value by EncodeKey
const (
	nilKeyType byte = iota
	boolKeyType
	int64KeyType
	float64KeyType
	stringKeyType
	timeKeyType
	decimalKeyType
	bytesKeyType
	listKeyType
	mapKeyType
	rowKeyType
	otherKeyType
)
