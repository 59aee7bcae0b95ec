package model

// PDFJobStatus is the lifecycle state of a server-side PDF rendering job.
type PDFJobStatus int

// PDF job states.
const (
	PDFJobPending PDFJobStatus = iota
	PDFJobReady
	PDFJobFailed
)

func (s PDFJobStatus) String() string {
	switch s {
	case PDFJobPending:
		return "pending"
	case PDFJobReady:
		return "ready"
	case PDFJobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PDFJob identifies an asynchronous PDF rendering task on the report
// service. Jobs are polled until ready and then discarded.
type PDFJob struct {
	JobID    string       `json:"jobId"`
	FileName string       `json:"fileName"`
	Status   PDFJobStatus `json:"-"`
}
