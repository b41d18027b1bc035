package model

import "errors"

// Sentinel errors of the chipnews domain. They get wrapped with helper.NewError
// and can be checked with errors.Is.
var (
	ErrIngestion        = errors.New("ingestion error")
	ErrIndexBuild       = errors.New("index build error")
	ErrIndexNotFound    = errors.New("index not found")
	ErrUnknownEntity    = errors.New("unknown entity")
	ErrSearchProvider   = errors.New("search provider error")
	ErrLLMResponseParse = errors.New("llm response parse error")
)
