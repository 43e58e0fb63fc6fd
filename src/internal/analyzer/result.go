package analyzer

// Status 统一结果信封的状态
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// 错误分类，与诊断分类器的编译器类别互补
const (
	ErrValidationFailure = "validation_failure"
	ErrProcessingFailure = "processing_failure"
)

// Result 所有公开操作共用的结果信封：成功时带 Data，
// 失败时带 ErrorType/ErrorMessage，绝不返回半成品数据
type Result struct {
	Status       Status `json:"status"`
	Data         any    `json:"data,omitempty"`
	ErrorType    string `json:"error_type,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// OK 报告操作是否成功
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

func success(data any) Result {
	return Result{Status: StatusSuccess, Data: data}
}

func failure(errType, message string) Result {
	return Result{Status: StatusError, ErrorType: errType, ErrorMessage: message}
}
