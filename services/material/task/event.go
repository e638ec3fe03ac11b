package task

import (
	"encoding/json"
	"time"

	"community-recycle-tracker/pkg/task"
	"community-recycle-tracker/pkg/taskname"

	"github.com/hibiken/asynq"
)

type MaterialRecordedPayload struct {
	MaterialLogID string    `json:"material_log_id"`
	ReceiptCode   string    `json:"receipt_code"`
	RecyclerID    string    `json:"recycler_id"`
	Material      string    `json:"material"`
	Weight        float64   `json:"weight"`
	Earnings      string    `json:"earnings"`
	LoggedAt      time.Time `json:"logged_at"`
}

// NewMaterialRecordedTask builds the ledger credit task. The task id is
// the material log id so a log is queued at most once.
func NewMaterialRecordedTask(p MaterialRecordedPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(taskname.MaterialRecorded, payload,
		asynq.Queue(task.QueueCritical),
		asynq.TaskID(p.MaterialLogID),
		asynq.MaxRetry(10),
	), nil
}

func ParseMaterialRecorded(t *asynq.Task) (MaterialRecordedPayload, error) {
	var p MaterialRecordedPayload
	err := json.Unmarshal(t.Payload(), &p)
	return p, err
}
