// Package metadata captures serializable snapshots of the class registry
// for tooling.
//
// # Overview
//
// A snapshot records every registered class with its attributes,
// constructors and methods, filtered at a visibility tier, together with
// the registered data types and a dependency graph of inheritance and
// class-typed attribute references. Snapshots render to JSON and YAML and
// can be decoded back for offline queries.
//
// # Example Usage
//
//	meta := metadata.Snapshot(metadata.SnapshotOptions{Level: meta.Protected})
//	out, _ := meta.YAML()
//	os.Stdout.Write(out)
//
// Registering a snapshot enables indexed queries:
//
//	metadata.Register(meta)
//	product, err := metadata.QueryClass("Shop::Product")
//	shop := metadata.QueryClassesByPattern("Shop::*")
//	prices := metadata.QueryAttributesByType("decimal")
//
// # Example YAML Output
//
//	version: "1.0"
//	level: public
//	classes:
//	  - package: Shop::Product
//	    key: shop_product
//	    name: Product
//	    abstract: false
//	    built: true
//	    attributes:
//	      - name: price
//	        label: Price
//	        type: decimal
//	        visibility: public
//	        authorization: rdwr
//	        accessors: getset
//	        context: instance
//	        required: true
//	        once: false
//	        declared_in: Shop::Product
//	        methods: [get_price, set_price]
//
// # Thread Safety
//
// The query registry guards its indexes with a read-write mutex. Taking a
// snapshot reads the class registry, which is not synchronized; snapshot
// only after declarations are complete.
package metadata
