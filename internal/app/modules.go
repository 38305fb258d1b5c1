package app

import (
	"github.com/vk/cartchain/internal/registry"
	"github.com/vk/cartchain/modules/attributes"
	"github.com/vk/cartchain/modules/env_attributes"
	"github.com/vk/cartchain/modules/gift"
	"github.com/vk/cartchain/modules/print"
	"github.com/vk/cartchain/modules/socketio"
	"github.com/vk/cartchain/modules/webhook"
)

// coreModules is the definitive list of all modules that are compiled into
// the cartchain binary.
var coreModules = []registry.Module{
	&gift.Module{},
	&attributes.Module{},
	&env_attributes.Module{},
	&print.Module{},
	&webhook.Module{},
	&socketio.Module{},
}
