package constants

// Queue names, highest priority first
const (
	QueueCritical = "critical" // log delivery
	QueueDefault  = "default"
	QueueLow      = "low" // query statistics
)

// GetAllQueues returns all valid queue names
func GetAllQueues() []string {
	return []string{QueueCritical, QueueDefault, QueueLow}
}

// IsValidQueue checks if queue name is valid
func IsValidQueue(queue string) bool {
	for _, q := range GetAllQueues() {
		if queue == q {
			return true
		}
	}
	return false
}

// QueueWeights is the asynq priority map for the worker
func QueueWeights() map[string]int {
	return map[string]int{
		QueueCritical: 6,
		QueueDefault:  3,
		QueueLow:      1,
	}
}
