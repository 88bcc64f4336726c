package queue

type Queue interface {
	Start()
	Stop()
	Add(job Job) (*Ticket, error)
	Get(id string) (Info, bool)
	List() []Info
}
