package models

type Service interface {
	Start()
	Stop()
}
