// Package hcl provides the HCL implementation of the config.Loader
// interface. It is responsible for file parsing, `locals` evaluation and the
// translation of `chain` blocks into the format-agnostic model.
//
// A chain file looks like this:
//
//	locals {
//	  gift_variant_id = 123456789
//	}
//
//	chain "free_gift" {
//	  description = "Adds a free gift to carts above 100.00"
//
//	  step "check_and_add_gift" {
//	    runner = "min_total_gift"
//	    arguments {
//	      min_total  = 10000
//	      variant_id = local.gift_variant_id
//	    }
//	  }
//	}
//
// Step arguments are evaluated once, at load time, against an evaluation
// context holding every `local.*` value and a small set of functions.
package hcl
