package domain

import "github.com/cuongbtq/socialtrend-automation/internal/tasks"

// JobMessage is a decoded job paired with the delivery it arrived on
type JobMessage struct {
	Job         *tasks.Job
	DeliveryTag uint64
}
