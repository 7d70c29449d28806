/*
Package gconf implements a configuration store intended to be used as a global,
in-database configuration.

Every extension keeps a single configuration object stored under the
"_c:<package>" key. The initial value is loaded from the "conf" section of the
genesis file, for example

	{
	  "conf": {
	    "donationpool": {"admin": "seq:test/admin/1", "fee_rate": 5}
	  }
	}

Configuration is validated on every save so that an invalid state can never
be persisted.
*/
package gconf
