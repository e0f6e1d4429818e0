package models

// Report is the payment rail's settlement report keyed by rail transaction id
type Report map[int64]Status

// StatusOf resolves a rail transaction. Ids missing from the report count as failed.
func (r Report) StatusOf(railID int64) Status {
	if s, ok := r[railID]; ok && s == StatusSuccess {
		return StatusSuccess
	}
	return StatusFail
}
