// Package mapping validates ETL mapping documents against a dictionary
// graph.
//
// A mapping document declares the Elasticsearch indices the ETL builds:
//
//	mappings:
//	  - name: subject_index
//	    doc_type: subject
//	    type: aggregator
//	    root: subject
//	    props:
//	      - name: submitter_id
//	      - name: sex
//	        src: gender
//	    flatten_props:
//	      - path: demographics
//	        props:
//	          - name: race
//	    aggregated_props:
//	      - name: _samples_count
//	        path: samples
//	        fn: count
//	      - name: data_formats
//	        path: samples.aliquots._ANY.submitted_aligned_reads_files
//	        src: data_format
//	        fn: set
//	    parent_props:
//	      - path: studies[study_code:code,study_name:name]
//	    joining_props:
//	      - index: file
//	        join_on: subject_id
//	        props:
//	          - name: file_formats
//	            src: data_format
//	            fn: set
//	  - name: file_index
//	    doc_type: file
//	    type: collector
//	    root: None
//	    category: data_file
//	    props:
//	      - name: object_id
//	    injecting_props:
//	      subject:
//	        props:
//	          - name: subject_id
//	            src: id
//	            fn: set
//
// # Validation
//
// Validate walks the document in two passes. The first pass builds every
// index from its own property groups, checked against the dictionary. The
// second pass checks joining_props against the properties computed for the
// joined index, so joins may reference indices declared later in the file.
//
// Problems are returned as diagnostics and never stop the walk. Only a
// document without a "mappings" list is rejected outright.
//
// # Path syntax
//
// Paths are dot-separated back-references. A segment may carry a bracket
// block renaming fields of that node:
//
//	subjects[subject_id:submitter_id,project_id].studies
//
// Each bracket entry is "name" (source is the same field) or
// "name:source". The wildcard segment "_ANY" is skipped.
package mapping
