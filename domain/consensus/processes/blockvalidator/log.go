package blockvalidator

import (
	"github.com/DaGoOfMaN/solarcoin/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BVAL")
