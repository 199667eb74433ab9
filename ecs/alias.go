package ecs

import "github.com/15mga/kite/util"

type (
	TComponent string
	TScene     string
	TSystem    string
	JobName    = string
)

type (
	FnEntity[ID Identify]     func(*Entity[ID])
	EntityToErr[ID Identify]  func(*Entity[ID]) *util.Err
	FnEntityCom[ID Identify]  func(*Entity[ID], IComponent[ID])
	FnEntityTCom[ID Identify] func(*Entity[ID], TComponent)
	FnFrame[ID Identify]      func(*Frame[ID])
)
